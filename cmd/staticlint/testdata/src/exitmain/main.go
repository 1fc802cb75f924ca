package main

import "os"

func main() {
	defer cleanup()

	if len(os.Args) > 3 {
		os.Exit(2) // want `os.Exit call is forbidden in main function: os.Exit\(2\)`
	}

	func() {
		os.Exit(3)
	}()

	os.Exit(1) // want `os.Exit call is forbidden in main function`
}

func cleanup() {}

func fail() {
	os.Exit(1)
}
