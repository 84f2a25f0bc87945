// Package config loads and persists gitpanel settings.
//
// Settings come from, lowest precedence first: built-in defaults, the user
// file ($XDG_CONFIG_HOME/gitpanel/config.yaml), the repository file
// (.git/gitpanel.yaml) and GITPANEL_* environment variables.
package config
