// Command ircodec records, stores, inspects and replays IR remote commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/banshee-data/ircodec/internal/api"
	"github.com/banshee-data/ircodec/internal/capture"
	"github.com/banshee-data/ircodec/internal/codec"
	"github.com/banshee-data/ircodec/internal/ir"
	"github.com/banshee-data/ircodec/internal/irdb"
	"github.com/banshee-data/ircodec/internal/playback"
	"github.com/banshee-data/ircodec/internal/report"
	"github.com/banshee-data/ircodec/internal/version"
)

const defaultDBFile = "ircodec.db"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ircodec <command> [flags]

Commands:
  record   capture a command from the receiver and store it
  send     replay a stored command
  list     list stored command sets
  show     show the commands of a set
  remove   remove a command from a set
  export   write a set to a file (json or yaml)
  import   read a set from a file (json or yaml)
  report   write an HTML timing report for a command
  serve    run the HTTP API
  version  print build information

Run 'ircodec <command> -h' for command flags.
`)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("ircodec: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "record":
		runRecord(os.Args[2:])
	case "send":
		runSend(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "show":
		runShow(os.Args[2:])
	case "remove":
		runRemove(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "import":
		runImport(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "version":
		fmt.Println("ircodec " + version.String())
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func openStore(path string) *irdb.Store {
	store, err := irdb.Open(path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", path, err)
	}
	return store
}

// loadOrCreateSet fetches a stored set, or starts a fresh one when the name
// is unknown.
func loadOrCreateSet(ctx context.Context, store *irdb.Store, name, receiverChannel string) *ir.CommandSet {
	set, err := store.LoadSet(ctx, name)
	if err == nil {
		return set
	}
	log.Printf("Creating new command set %q", name)
	return ir.NewCommandSet(name, "", "", receiverChannel)
}

func runRecord(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	commandID := fs.String("command", "", "Command id (required)")
	desc := fs.String("desc", "", "Command description")
	device := fs.String("port", "/dev/ttyUSB0", "Serial device of the capture receiver")
	baud := fs.Int("baud", capture.DefaultBaudRate, "Serial baud rate")
	tolerance := fs.Float64("tolerance", ir.DefaultTolerance, "Relative grouping tolerance")
	fs.Parse(args)

	if *setName == "" || *commandID == "" {
		log.Fatal("record requires -set and -command")
	}

	store := openStore(*dbPath)
	defer store.Close()
	ctx := context.Background()

	set := loadOrCreateSet(ctx, store, *setName, *device)

	src := capture.NewSerialSource(*device)
	src.BaudRate = *baud

	log.Printf("Point the remote at the receiver and press the button...")
	cmd, err := set.Record(ctx, *commandID, *desc, src, *tolerance)
	if err != nil {
		log.Fatalf("Failed to record command: %v", err)
	}
	log.Printf("Captured %d signals, %d pulse classes, %d gap classes",
		len(cmd.Raw), len(cmd.PulseClasses), len(cmd.GapClasses))

	if err := store.SaveSet(ctx, set); err != nil {
		log.Fatalf("Failed to save command set: %v", err)
	}
	log.Printf("Stored %s/%s", *setName, *commandID)
}

func runSend(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	commandID := fs.String("command", "", "Command id (required)")
	carrierKHz := fs.Float64("carrier", playback.DefaultCarrierKHz, "Carrier frequency in kHz")
	fs.Parse(args)

	if *setName == "" || *commandID == "" {
		log.Fatal("send requires -set and -command")
	}

	store := openStore(*dbPath)
	defer store.Close()
	ctx := context.Background()

	set, err := store.LoadSet(ctx, *setName)
	if err != nil {
		log.Fatalf("Failed to load command set: %v", err)
	}
	if err := set.Emit(*commandID, playback.LogEmitter{}, *carrierKHz); err != nil {
		log.Fatalf("Failed to emit command: %v", err)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	fs.Parse(args)

	store := openStore(*dbPath)
	defer store.Close()

	infos, err := store.ListSets(context.Background())
	if err != nil {
		log.Fatalf("Failed to list command sets: %v", err)
	}
	if len(infos) == 0 {
		fmt.Println("no command sets stored")
		return
	}
	for _, info := range infos {
		fmt.Printf("%-20s %3d commands  %s\n", info.Name, info.CommandCount, info.Description)
	}
}

func runShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	fs.Parse(args)

	if *setName == "" {
		log.Fatal("show requires -set")
	}

	store := openStore(*dbPath)
	defer store.Close()

	set, err := store.LoadSet(context.Background(), *setName)
	if err != nil {
		log.Fatalf("Failed to load command set: %v", err)
	}

	fmt.Printf("%s (%s)\n", set.Name, set.Description)
	fmt.Printf("  emitter: %s  receiver: %s\n", set.EmitterChannel, set.ReceiverChannel)
	for _, id := range set.Names() {
		cmd, _ := set.Get(id)
		state := "raw"
		if cmd.IsNormalized() {
			state = fmt.Sprintf("normalized (%d pulse / %d gap classes)",
				len(cmd.PulseClasses), len(cmd.GapClasses))
		}
		fmt.Printf("  %-16s %4d signals  %s\n", id, len(cmd.Raw), state)
	}
}

func runRemove(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	commandID := fs.String("command", "", "Command id (required)")
	fs.Parse(args)

	if *setName == "" || *commandID == "" {
		log.Fatal("remove requires -set and -command")
	}

	store := openStore(*dbPath)
	defer store.Close()
	ctx := context.Background()

	set, err := store.LoadSet(ctx, *setName)
	if err != nil {
		log.Fatalf("Failed to load command set: %v", err)
	}
	if err := set.Remove(*commandID); err != nil {
		log.Fatalf("Failed to remove command: %v", err)
	}
	if err := store.SaveSet(ctx, set); err != nil {
		log.Fatalf("Failed to save command set: %v", err)
	}
	log.Printf("Removed %s/%s", *setName, *commandID)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	out := fs.String("out", "", "Output file (required)")
	format := fs.String("format", "json", "Output format (json or yaml)")
	fs.Parse(args)

	if *setName == "" || *out == "" {
		log.Fatal("export requires -set and -out")
	}

	store := openStore(*dbPath)
	defer store.Close()

	set, err := store.LoadSet(context.Background(), *setName)
	if err != nil {
		log.Fatalf("Failed to load command set: %v", err)
	}
	if err := codec.SaveSet(*out, set, *format); err != nil {
		log.Fatalf("Failed to export command set: %v", err)
	}
	log.Printf("Exported %q to %s (%s)", *setName, *out, *format)
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	in := fs.String("in", "", "Input file (required)")
	format := fs.String("format", "json", "Input format (json or yaml)")
	fs.Parse(args)

	if *in == "" {
		log.Fatal("import requires -in")
	}

	store := openStore(*dbPath)
	defer store.Close()

	set, err := codec.LoadSet(*in, *format)
	if err != nil {
		log.Fatalf("Failed to read command set: %v", err)
	}
	if err := store.SaveSet(context.Background(), set); err != nil {
		log.Fatalf("Failed to save command set: %v", err)
	}
	log.Printf("Imported %q (%d commands)", set.Name, len(set.Commands))
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	setName := fs.String("set", "", "Command set name (required)")
	commandID := fs.String("command", "", "Command id (required)")
	out := fs.String("out", "", "Output HTML file (required)")
	fs.Parse(args)

	if *setName == "" || *commandID == "" || *out == "" {
		log.Fatal("report requires -set, -command and -out")
	}

	store := openStore(*dbPath)
	defer store.Close()

	set, err := store.LoadSet(context.Background(), *setName)
	if err != nil {
		log.Fatalf("Failed to load command set: %v", err)
	}
	cmd, ok := set.Get(*commandID)
	if !ok {
		log.Fatalf("No command %q in set %q", *commandID, *setName)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()
	if err := report.WriteCommandReport(f, cmd); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Wrote report to %s", *out)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBFile, "Database file")
	listen := fs.String("listen", ":8080", "Listen address")
	fs.Parse(args)

	store := openStore(*dbPath)
	defer store.Close()

	server := api.NewServer(store, playback.LogEmitter{})
	log.Printf("Listening on %s", *listen)
	if err := http.ListenAndServe(*listen, server); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
