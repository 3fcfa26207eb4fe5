// Command xbeetool drives a local XBee module from a serial port,
// running its self-query and printing the learned identity.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/digidotcom/xbee-ansic-library-sub000/xbee"
	"github.com/digidotcom/xbee-ansic-library-sub000/xbeelog"
	"github.com/digidotcom/xbee-ansic-library-sub000/xbeeserial"
)

var (
	flagDevice = flag.String("d", "", "serial device path (e.g. /dev/ttyUSB0)")
	flagBaud   = flag.Uint("b", 9600, "baud rate")
	flagDebug  = flag.Bool("v", false, "set the log level to debug (frame traffic itself is not logged)")
)

func main() {
	flag.Parse()
	if *flagDevice == "" {
		fmt.Fprintln(os.Stderr, "usage: xbeetool -d /dev/ttyUSB0 [-b 9600] [-v]")
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *flagDebug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	logger := xbeelog.New(zl).WithDevice(*flagDevice)

	port, err := xbeeserial.Open(*flagDevice, uint32(*flagBaud))
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	dev, err := xbee.NewDevice(port, wallClock{start: time.Now()}, xbee.Config{Logger: logger})
	if err != nil {
		log.Fatal(err)
	}

	dev.StartSelfQuery()

	deadline := time.Now().Add(10 * time.Second)
	for !dev.State().QueryDone && time.Now().Before(deadline) {
		if _, err := dev.Tick(); err != nil {
			log.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !dev.State().QueryDone {
		log.Fatal("self-query timed out")
	}

	id := dev.Identity()
	fmt.Printf("IEEE address:    %016X\n", id.IEEE())
	fmt.Printf("Firmware:        %04X\n", id.FirmwareVersion)
	fmt.Printf("Hardware:        %04X\n", id.HardwareVersion)
	fmt.Printf("Node type:       %s\n", id.NodeType)
	fmt.Printf("Stack:           %s\n", id.Stack)
	fmt.Printf("Network address: %04X\n", id.NetworkAddress)
	fmt.Printf("Node identifier: %q\n", id.NodeIdentifier)
	fmt.Printf("Joined:          %t\n", dev.State().Joined)
	fmt.Printf("Authenticated:   %t\n", dev.State().Authenticated)
}

// wallClock adapts time.Since to the millisecond/second counters
// xbee.Clock requires.
type wallClock struct{ start time.Time }

func (c wallClock) Milliseconds() uint32 { return uint32(time.Since(c.start).Milliseconds()) }
func (c wallClock) Seconds() uint32      { return uint32(time.Since(c.start).Seconds()) }
