// Package config manages the user configuration file for the TSL UMD
// tester.
//
// The configuration is a YAML registry stored in the OS-appropriate
// config directory (~/.config/tsl-umd-tester/config.yaml on Linux and
// macOS, %LOCALAPPDATA%\tsl-umd-tester on Windows). It holds two kinds of
// user data:
//
//   - Presets: named tally messages the sender can transmit by name
//     instead of repeating flags. A preset carries a protocol selector
//     ("3.1", "4.0" or "5.0") and the fields for that variant; Message
//     converts it to a wire-model value.
//   - Preferences: default listener ports and web feed address for the
//     monitor.
//
// Writes are atomic (temp file + rename) and guarded by a process-wide
// mutex; the registry itself is loaded lazily and shared.
package config
