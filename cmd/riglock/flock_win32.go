//go:build windows

package main

import "errors"

func runFlocked(args []string) (int, error) {
	return 1, errors.New("The flock mode is not supported on this platform")
}
