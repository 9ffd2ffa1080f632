package meta

// Version is overridden at build time with -ldflags "-X github.com/dkrizic/memorylove/meta.Version=...".
var Version = "dev"

const Service = "memorylove"
