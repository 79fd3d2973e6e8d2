package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_pinvault() {
    local cur prev words cword
    _init_completion || return

    local commands="run status compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        --config)
            _filedir json5
            return
            ;;
        --dir)
            _filedir -d
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        run|status|compact)
            COMPREPLY=($(compgen -W "--config --dir" -- "$cur"))
            ;;
        keyring)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--config --dir" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            fi
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _pinvault pinvault
`

const zshCompletion = `#compdef pinvault

_pinvault() {
    local -a commands
    commands=(
        'run:Start an interactive session (default)'
        'status:Show vault status'
        'compact:Compact vault to reclaim disk space'
        'keyring:Manage PIN in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    local -a vault_flags
    vault_flags=(
        '--config[Config file]:config file:_files -g "*.json5"'
        '--dir[Data directory]:directory:_files -/'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'pinvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                run|status|compact)
                    _arguments $vault_flags
                    ;;
                keyring)
                    _arguments $vault_flags '2:subcommand:(save delete status)'
                    ;;
                help)
                    _describe -t commands 'pinvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_pinvault "$@"
`

const fishCompletion = `# pinvault fish completions

set -l commands run status compact keyring help completion

complete -c pinvault -f

# Commands
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a run -d 'Start an interactive session'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact vault'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage PIN in OS keyring'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# vault flags
complete -c pinvault -n "__fish_seen_subcommand_from run status compact keyring" -l config -r -F -d 'Config file'
complete -c pinvault -n "__fish_seen_subcommand_from run status compact keyring" -l dir -r -a "(__fish_complete_directories)" -d 'Data directory'

# keyring subcommands
complete -c pinvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c pinvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c pinvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
