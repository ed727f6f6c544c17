//go:build pcap
// +build pcap

// Command replay reads a packet capture of a race session and re-decodes the
// telemetry stream, printing the monitor view or re-journaling the frames.
// Build with the 'pcap' tag; libpcap is required.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/trackpilot/internal/db"
	"github.com/banshee-data/trackpilot/internal/render"
	"github.com/banshee-data/trackpilot/internal/scrproto"
)

var (
	pcapFile = flag.String("pcap", "", "Packet capture of a race session")
	udpPort  = flag.Int("port", 3001, "Simulator UDP port to filter on")
	journal  = flag.String("journal", "", "Optional sqlite journal to refill")
	show     = flag.Bool("show", false, "Print the monitor view of each frame")
)

func main() {
	flag.Parse()
	if *pcapFile == "" {
		log.Fatal("a -pcap file is required")
	}

	handle, err := pcap.OpenOffline(*pcapFile)
	if err != nil {
		log.Fatalf("failed to open PCAP file %s: %v", *pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("udp port %d", *udpPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		log.Fatalf("failed to set BPF filter %q: %v", filterStr, err)
	}

	var journalDB *db.DB
	var sessionID string
	if *journal != "" {
		journalDB, err = db.NewDB(*journal)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer journalDB.Close()
		sessionID, err = journalDB.StartSession("pcap", *udpPort, "replay", 3, *pcapFile)
		if err != nil {
			log.Fatalf("failed to start journal session: %v", err)
		}
	}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packets, frames := 0, 0
	start := time.Now()

	for packet := range packetSource.Packets() {
		packets++
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			continue
		}
		payload := string(udp.Payload)

		// Only server->client telemetry; skip handshakes, actions, markers.
		if int(udp.SrcPort) != *udpPort || strings.Contains(payload, "***") {
			continue
		}
		snap, err := scrproto.Decode(udp.Payload)
		if err != nil {
			continue
		}
		if *show {
			fmt.Print(render.Snapshot(snap))
			fmt.Println()
		}
		if journalDB != nil {
			if err := journalDB.RecordFrame(sessionID, frames, snap); err != nil {
				log.Printf("journal: %v", err)
			}
		}
		frames++
	}

	if journalDB != nil {
		if err := journalDB.EndSession(sessionID, "replay", 0); err != nil {
			log.Printf("journal: %v", err)
		}
	}
	log.Printf("replayed %d frames from %d packets in %v", frames, packets, time.Since(start))
}
