//go:build !pcap
// +build !pcap

package main

import "log"

func main() {
	log.Fatal("replay requires the 'pcap' build tag: go build -tags pcap ./cmd/tools/replay")
}
