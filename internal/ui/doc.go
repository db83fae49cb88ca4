// Package ui draws snapshots of the tracked processes in the terminal and forwards key presses to the
// control plane as commands. It never touches the registry itself.
package ui
