package guide

// Version is the release of the guide, reported by the CLI and HTTP /info.
const Version = "0.3.0"
