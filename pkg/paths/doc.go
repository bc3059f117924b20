// Package paths resolves the directories rpp works with.
//
// Directory settings are templates. Two keywords are recognised:
//
//   - #packdir: the resourcepacks folder inside the Minecraft directory
//   - #workdir: the working directory holding configs/ and patches/
//
// A leading ~ expands to the home directory. Output names come from a pack's
// name scheme, which understands #name, #version and #mcversion.
//
// Per user files follow the XDG base directory layout via adrg/xdg:
//
//   - settings: $XDG_CONFIG_HOME/rpp/settings.toml
//   - log:      $XDG_STATE_HOME/rpp/rpp.log
package paths
