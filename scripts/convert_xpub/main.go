// convert_xpub rewrites an extended public key with another SLIP-132 prefix.
//
// Usage:
//
//	go run ./scripts/convert_xpub <extended-pub-key> [target]
//
// Or with stdin:
//
//	echo "<extended-pub-key>" | go run ./scripts/convert_xpub - zpub
//
// The target defaults to xpub. Only the version bytes change, so the output
// derives exactly the same addresses as the input.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/deriveaddrs/slip132"
)

func main() {
	var key string
	target := slip132.XPub

	args := os.Args[1:]
	if len(args) > 0 && args[0] != "-" {
		key = args[0]
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			key = strings.TrimSpace(scanner.Text())
		}
	}
	if len(args) > 1 {
		target = slip132.Tag(args[1])
	}

	if key == "" {
		fmt.Fprintln(os.Stderr, "Usage: convert_xpub <extended-pub-key> [target]")
		fmt.Fprintln(os.Stderr, "   or: echo <extended-pub-key> | convert_xpub - [target]")
		os.Exit(1)
	}

	converted, err := slip132.Retarget(key, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(converted)
}
