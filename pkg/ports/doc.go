/*
Package ports defines the driven ports (interfaces) of the guide.

These interfaces decouple the dialogue core from storage and coordination
backends.

# Key Interfaces

  - ConversationStore: persists and loads one Conversation per session ID.
  - DistributedLocker: serializes access to a session across replicas.
*/
package ports
