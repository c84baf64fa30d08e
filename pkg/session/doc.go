/*
Package session owns conversations on behalf of multi-session hosts.

Every turn for a session runs under that session's lock: a reference-counted local
mutex, plus a distributed lock when the guide runs as several replicas. This is what
keeps the one-conversation-one-owner rule true for HTTP and MCP hosts.
*/
package session
