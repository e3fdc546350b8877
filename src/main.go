package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"nestdb/src/engine"
	"nestdb/src/helpers"
	"nestdb/src/settings"

	"go.uber.org/zap"
)

// printUsage prints helpful usage information
func printUsage() {
	log.Println("nestdb - an embedded, file-backed JSON document store")
	log.Println("\nUsage:")
	log.Println("  nestdb [options] <command> [args]")
	log.Println("\nOptions:")
	flag.PrintDefaults()

	log.Println("\nCommands:")
	log.Println("  get <key>           Print the value at a dotted key")
	log.Println("  set <key> <json>    Store a JSON value at a dotted key")
	log.Println("  has <key>           Report whether a dotted key exists")
	log.Println("  delete <key>        Remove the value at a dotted key")
	log.Println("  dump                Print the whole document tree")

	log.Println("\nExamples:")
	log.Println("  nestdb --datafile=data/nest.json set person.name '\"Peter\"'")
	log.Println("  nestdb --datafile=data/nest.json get person.name")
}

func main() {
	args := settings.GetSettings()

	flag.StringVar(&args.DataFile, "datafile", args.DataFile, "Path of the primary database file")
	flag.StringVar(&args.CollectionsDir, "collectionsdir", args.CollectionsDir, "Directory for collection files")
	flag.BoolVar(&args.AutoSave, "autosave", args.AutoSave, "Persist after every mutating operation")
	flag.IntVar(&args.TabSize, "tabsize", args.TabSize, "Spaces of indentation in persisted JSON (0 for compact)")
	flag.StringVar(&args.EncryptionKey, "key", "", "32-character key for value encryption")
	flag.StringVar(&args.EncryptionMode, "keymode", args.EncryptionMode, "Envelope mode (ctr, aead)")
	flag.BoolVar(&args.Timestamps, "timestamps", false, "Stamp createdAt/updatedAt on collection entries")
	flag.BoolVar(&args.StrictPaths, "strictpaths", false, "Fail instead of overwriting non-object path segments")
	flag.StringVar(&args.ConfigFile, "config", "", "Path to a YAML config file")
	flag.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&args.Debug, "debug", false, "Enable debug mode")

	flag.Parse()

	if args.ConfigFile != "" {
		if !helpers.FileExists(args.ConfigFile, nil) {
			fmt.Fprintf(os.Stderr, "Error: config file %s does not exist\n", args.ConfigFile)
			os.Exit(1)
		}
		if err := settings.LoadFromFile(args.ConfigFile, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}

	if err := validateArguments(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		printUsage()
		os.Exit(1)
	}

	var logger *zap.Logger
	var err error

	if args.Debug {
		// Development configuration with more verbose output
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		// Production configuration
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	zap.ReplaceGlobals(logger)

	store := engine.NewFileStore(sugar)
	db, err := engine.NewDatabase(store, args, sugar)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if err := runCommand(db, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := db.Close(); err != nil {
		log.Fatalf("Failed to save database: %v", err)
	}
}

func validateArguments(args *settings.Arguments) error {
	if args.DataFile == "" {
		return fmt.Errorf("a data file path is required")
	}
	if args.CollectionsDir == "" {
		return fmt.Errorf("a collections directory is required")
	}
	if args.TabSize < 0 {
		return fmt.Errorf("tab size must be zero or greater")
	}
	if args.EncryptionKey != "" && len(args.EncryptionKey) != 32 {
		return fmt.Errorf("the encryption key must be exactly 32 characters")
	}
	return nil
}

func runCommand(db *engine.Database, command []string) error {
	if len(command) == 0 {
		printUsage()
		return nil
	}

	switch command[0] {
	case "get":
		if len(command) != 2 {
			return fmt.Errorf("get takes exactly one key")
		}
		value, found, err := db.Get(command[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s is not set", command[1])
		}
		return printJSON(value)

	case "set":
		if len(command) != 3 {
			return fmt.Errorf("set takes a key and a JSON value")
		}
		// Anything that fails to parse as JSON is stored as a bare string,
		// so `set person.name Peter` works without shell-quoted JSON.
		var value interface{}
		if err := json.Unmarshal([]byte(command[2]), &value); err != nil {
			value = helpers.StripQuotes(command[2])
		}
		_, err := db.Set(command[1], value)
		return err

	case "has":
		if len(command) != 2 {
			return fmt.Errorf("has takes exactly one key")
		}
		found, err := db.Has(command[1])
		if err != nil {
			return err
		}
		fmt.Println(found)
		return nil

	case "delete":
		if len(command) != 2 {
			return fmt.Errorf("delete takes exactly one key")
		}
		existed, err := db.Delete(command[1])
		if err != nil {
			return err
		}
		fmt.Println(existed)
		return nil

	case "dump":
		return printJSON(db.ToMap())

	default:
		return fmt.Errorf("unknown command %q", command[0])
	}
}

func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
