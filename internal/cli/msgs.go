package cli

// Command descriptions
const (
	MsgRootShort = "Build Minecraft resource packs from one source"
	MsgRootLong  = `rpp builds every configured variant of a resource pack from a single
source directory. Each config copies the source, strips textures, writes
pack.mcmeta, applies its patch files and packages the result.

Packs are declared in the configs directory of the working directory;
patch files live in its patches directory.`
	MsgBuildShort     = "Build a pack's configs"
	MsgListShort      = "List packs, or the configs and run options of a pack"
	MsgValidateShort  = "Check models, blockstates and sounds of a pack directory"
	MsgGenConfigShort = "Print a commented settings file"
	MsgVersionShort   = "Print version information"
)

// Prompts
const (
	MsgChoosePack      = "Pack:"
	MsgChooseRunOption = "Run option:"
)

// Output
const (
	MsgNoPacksFound     = "No packs found in %s"
	MsgAvailablePacks   = "Packs"
	MsgConfigs          = "Configs"
	MsgRunOptions       = "Run options"
	MsgBuildSummary     = "%s %s (%s): %d of %d configs built in %s"
	MsgPatchFailed      = "patch failed: %v"
	MsgValidationOK     = "%d files checked, no problems found"
	MsgValidationFailed = "%d problems in %d files"
	MsgWatching         = "Watching %d directories for changes (Ctrl+C to stop)"
)
