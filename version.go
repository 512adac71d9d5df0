package httpbind

// Version of the library
var Version = "v1.0.0"
