package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/pinvault/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No command starts a session
	if len(os.Args) < 2 {
		runSession(ctx, nil)
		return
	}

	switch os.Args[1] {
	case "run":
		runSession(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		// Flags without a command also start a session
		if len(os.Args[1]) > 0 && os.Args[1][0] == '-' {
			runSession(ctx, os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parseVaultFlags parses the flags every vault command accepts
func parseVaultFlags(name string, args []string) (cmd.Options, []string) {
	var opts cmd.Options
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to the config file")
	fs.StringVar(&opts.DataDir, "dir", "", "Directory holding the vault")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return opts, fs.Args()
}

func runSession(ctx context.Context, args []string) {
	opts, _ := parseVaultFlags("run", args)
	cmd.Run(ctx, opts)
}

func runStatus(_ context.Context, args []string) {
	opts, _ := parseVaultFlags("status", args)
	cmd.Status(opts)
}

func runCompact(_ context.Context, args []string) {
	opts, _ := parseVaultFlags("compact", args)
	cmd.Compact(opts)
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault keyring <save|delete|status>")
		os.Exit(1)
	}
	opts, _ := parseVaultFlags("keyring "+args[0], args[1:])

	switch args[0] {
	case "save":
		cmd.KeyringSave(opts)
	case "delete":
		cmd.KeyringDelete(opts)
	case "status":
		cmd.KeyringStatus(opts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: pinvault keyring <save|delete|status>")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("pinvault - PIN-protected password vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pinvault [command] [--config PATH] [--dir DIR]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run         Start an interactive session (default)")
	fmt.Println("  status      Show vault status")
	fmt.Println("  compact     Compact vault to reclaim disk space")
	fmt.Println("  keyring     Manage the PIN in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pinvault                        # Start a session")
	fmt.Println("  pinvault --dir ./vault          # Use a vault in ./vault")
	fmt.Println("  pinvault status                 # Check vault status")
	fmt.Println("  pinvault keyring save           # Remember the PIN")
	fmt.Println()
	fmt.Println("Use 'pinvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "run":
		fmt.Println("pinvault [run] [--config PATH] [--dir DIR]")
		fmt.Println()
		fmt.Println("Starts an interactive session on the terminal.")
		fmt.Println("Asks to create a PIN on first use, then for the PIN.")
		fmt.Println("After authentication the commands are:")
		fmt.Println("  create, get, delete, list, info")
		fmt.Println()
		fmt.Println("Only one session may use a vault at a time.")
		fmt.Println("The session ends at end of input or on Ctrl-C.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --config PATH   Config file (default: $XDG_CONFIG_HOME/pinvault/config.json5)")
		fmt.Println("  --dir DIR       Directory holding the vault (overrides data_dir)")
	case "status":
		fmt.Println("pinvault status [--config PATH] [--dir DIR]")
		fmt.Println()
		fmt.Println("Shows vault status including:")
		fmt.Println("  - Vault location")
		fmt.Println("  - Whether a PIN is configured")
		fmt.Println("  - Storage usage")
		fmt.Println("  - Keyring status")
		fmt.Println()
		fmt.Println("Does not require a PIN.")
	case "compact":
		fmt.Println("pinvault compact [--config PATH] [--dir DIR]")
		fmt.Println()
		fmt.Println("Compacts the vault database to reclaim unused disk space.")
		fmt.Println()
		fmt.Println("Does not require a PIN.")
	case "keyring":
		fmt.Println("pinvault keyring <save|delete|status> [--config PATH] [--dir DIR]")
		fmt.Println()
		fmt.Println("Manages the PIN stored in the OS keyring.")
		fmt.Println("With use_keyring set in the config file, sessions")
		fmt.Println("start authenticated when the stored PIN is valid.")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  save     Verify the PIN and store it")
		fmt.Println("  delete   Remove the stored PIN")
		fmt.Println("  status   Report whether a PIN is stored")
	case "completion":
		fmt.Println("pinvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(pinvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(pinvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  pinvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
