package sceneflow

// Version is the release version, overridden at build time with -ldflags "-X".
var Version = "0.1.0-dev"
