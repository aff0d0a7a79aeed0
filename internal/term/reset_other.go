//go:build !linux

package term

func resetTerminalMode() {}
