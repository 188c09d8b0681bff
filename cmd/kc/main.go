package main

import "github.com/ccpk1/kidschores-ha-sub008/cmd/kc/root"

func main() {
	root.Execute()
}
