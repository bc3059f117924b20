// Package config loads rpp settings.
//
// Settings are layered, later layers winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. a settings file: the --settings flag, else ./rpp.toml, else
//     $XDG_CONFIG_HOME/rpp/settings.toml
//  3. RPP_ environment variables, with "__" separating levels
//     (RPP_BUILD__COPY_WORKERS=4)
//
// The result is a Settings value that callers pass along explicitly. There is
// no package level instance.
package config
