package internal

// Version is the application version reported by the CLI
const Version = "0.3.0"
