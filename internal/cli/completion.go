package cli

import (
	"fmt"
)

// CompletionCmd generates shell completions
type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type (bash, zsh, fish)"`
}

// Run executes the completion command
func (c *CompletionCmd) Run(globals *Globals) error {
	switch c.Shell {
	case "bash":
		return c.generateBash(globals)
	case "zsh":
		return c.generateZsh(globals)
	case "fish":
		return c.generateFish(globals)
	default:
		return fmt.Errorf("unsupported shell: %s", c.Shell)
	}
}

func (c *CompletionCmd) generateBash(globals *Globals) error {
	script := `# logscope bash completion script
# Add to ~/.bashrc or ~/.bash_profile:
#   eval "$(logscope completion bash)"

_logscope_completions() {
    local cur prev words cword
    _init_completion || return

    local commands="ping anomalies reports metrics detect upload rca logs dashboard ui monitor doctor config version completion"
    local global_flags="-f --format --base-url --timeout -q --quiet -v --verbose"
    local severities="all low medium high critical"

    case "${prev}" in
        logscope)
            COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
            return
            ;;
        -f|--format)
            COMPREPLY=($(compgen -W "auto ndjson text" -- "${cur}"))
            return
            ;;
        -s|--severity|--min-severity)
            COMPREPLY=($(compgen -W "${severities}" -- "${cur}"))
            return
            ;;
        metrics)
            COMPREPLY=($(compgen -W "summary daily top-errors top-anomalies slowest downtime" -- "${cur}"))
            return
            ;;
        detect)
            COMPREPLY=($(compgen -W "run security error-spike" -- "${cur}"))
            return
            ;;
        config)
            COMPREPLY=($(compgen -W "show path generate" -- "${cur}"))
            return
            ;;
        upload|--pattern-file|--log-file)
            _filedir
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
    esac

    case "${words[1]}" in
        anomalies)
            COMPREPLY=($(compgen -W "-p --pattern -x --exclude -w --where -t --type --exclude-type --min-severity -n --limit --analyze --remember --pattern-file ${global_flags}" -- "${cur}"))
            ;;
        reports)
            COMPREPLY=($(compgen -W "-s --severity -w --where --width ${global_flags}" -- "${cur}"))
            ;;
        upload)
            COMPREPLY=($(compgen -W "--no-metrics ${global_flags}" -- "${cur}"))
            ;;
        monitor)
            COMPREPLY=($(compgen -W "--listen --interval ${global_flags}" -- "${cur}"))
            ;;
        ui)
            COMPREPLY=($(compgen -W "-s --severity --log-file ${global_flags}" -- "${cur}"))
            ;;
        *)
            COMPREPLY=($(compgen -W "${commands} ${global_flags}" -- "${cur}"))
            ;;
    esac
}

complete -F _logscope_completions logscope
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateZsh(globals *Globals) error {
	script := `#compdef logscope
# logscope zsh completion script
# Add to ~/.zshrc:
#   eval "$(logscope completion zsh)"

_logscope() {
    local -a commands
    commands=(
        'ping:Check that the backend is reachable'
        'anomalies:List detected anomalies'
        'reports:Show anomaly reports filtered by severity'
        'metrics:Show backend metrics'
        'detect:Trigger backend detection runs'
        'upload:Upload a log file and run detection'
        'rca:Show root-cause analysis'
        'logs:Inspect parsed log lines'
        'dashboard:Print a one-shot dashboard overview'
        'ui:Interactive TUI dashboard'
        'monitor:Serve backend metrics for Prometheus'
        'doctor:Check configuration and backend endpoints'
        'config:Show or manage configuration'
        'version:Show version information'
        'completion:Generate shell completions'
    )

    local -a global_opts
    global_opts=(
        '-f[Output format]:format:(auto ndjson text)'
        '--format[Output format]:format:(auto ndjson text)'
        '--base-url[Backend origin]:url:'
        '--timeout[Per-request timeout]:duration:'
        '-q[Suppress warnings]'
        '--quiet[Suppress warnings]'
        '-v[Show debug output]'
        '--verbose[Show debug output]'
    )

    _arguments -C \
        $global_opts \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                anomalies)
                    _arguments \
                        '-p[Message regex]:pattern:' \
                        '--pattern[Message regex]:pattern:' \
                        '*-x[Exclude regex]:pattern:' \
                        '*--exclude[Exclude regex]:pattern:' \
                        '*--where[Field filter]:expression:' \
                        '*--type[Anomaly type]:type:' \
                        '--min-severity[Minimum severity]:severity:(low medium high critical)' \
                        '--limit[Maximum anomalies]:limit:' \
                        '--analyze[Summarize instead of listing]' \
                        '--remember[Track known patterns]' \
                        '--pattern-file[Pattern store]:file:_files' \
                        $global_opts
                    ;;
                reports)
                    _arguments \
                        '--severity[Severity selector]:severity:(all low medium high critical)' \
                        '*--where[Field filter]:expression:' \
                        $global_opts
                    ;;
                metrics)
                    _arguments '1:view:(summary daily top-errors top-anomalies slowest downtime)'
                    ;;
                detect)
                    _arguments '1:kind:(run security error-spike)'
                    ;;
                upload)
                    _arguments '1:file:_files' '--no-metrics[Skip the metrics view]' $global_opts
                    ;;
                monitor)
                    _arguments '--listen[Listen address]:address:' '--interval[Scrape interval]:duration:' $global_opts
                    ;;
                config)
                    _arguments '1:action:(show path generate)'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

compdef _logscope logscope
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateFish(globals *Globals) error {
	script := `# logscope fish completion script
# Add to ~/.config/fish/completions/logscope.fish

# Disable file completion by default
complete -c logscope -f

# Commands
complete -c logscope -n "__fish_use_subcommand" -a "ping" -d "Check that the backend is reachable"
complete -c logscope -n "__fish_use_subcommand" -a "anomalies" -d "List detected anomalies"
complete -c logscope -n "__fish_use_subcommand" -a "reports" -d "Show anomaly reports filtered by severity"
complete -c logscope -n "__fish_use_subcommand" -a "metrics" -d "Show backend metrics"
complete -c logscope -n "__fish_use_subcommand" -a "detect" -d "Trigger backend detection runs"
complete -c logscope -n "__fish_use_subcommand" -a "upload" -d "Upload a log file and run detection"
complete -c logscope -n "__fish_use_subcommand" -a "rca" -d "Show root-cause analysis"
complete -c logscope -n "__fish_use_subcommand" -a "logs" -d "Inspect parsed log lines"
complete -c logscope -n "__fish_use_subcommand" -a "dashboard" -d "Print a one-shot dashboard overview"
complete -c logscope -n "__fish_use_subcommand" -a "ui" -d "Interactive TUI dashboard"
complete -c logscope -n "__fish_use_subcommand" -a "monitor" -d "Serve backend metrics for Prometheus"
complete -c logscope -n "__fish_use_subcommand" -a "doctor" -d "Check configuration and backend endpoints"
complete -c logscope -n "__fish_use_subcommand" -a "config" -d "Show or manage configuration"
complete -c logscope -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c logscope -n "__fish_use_subcommand" -a "completion" -d "Generate shell completions"

# Global flags
complete -c logscope -s f -l format -d "Output format" -xa "auto ndjson text"
complete -c logscope -l base-url -d "Backend origin" -x
complete -c logscope -l timeout -d "Per-request timeout" -x
complete -c logscope -s q -l quiet -d "Suppress warnings"
complete -c logscope -s v -l verbose -d "Show debug output"

# Subcommands
complete -c logscope -n "__fish_seen_subcommand_from metrics" -a "summary daily top-errors top-anomalies slowest downtime"
complete -c logscope -n "__fish_seen_subcommand_from detect" -a "run security error-spike"
complete -c logscope -n "__fish_seen_subcommand_from config" -a "show path generate"

# Anomalies command
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -s p -l pattern -d "Message regex"
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -s x -l exclude -d "Exclude regex"
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -s w -l where -d "Field filter"
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -l min-severity -d "Minimum severity" -xa "low medium high critical"
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -l analyze -d "Summarize instead of listing"
complete -c logscope -n "__fish_seen_subcommand_from anomalies" -l remember -d "Track known patterns"

# Reports command
complete -c logscope -n "__fish_seen_subcommand_from reports" -s s -l severity -d "Severity selector" -xa "all low medium high critical"

# Upload command
complete -c logscope -n "__fish_seen_subcommand_from upload" -F
complete -c logscope -n "__fish_seen_subcommand_from upload" -l no-metrics -d "Skip the metrics view"

# Monitor command
complete -c logscope -n "__fish_seen_subcommand_from monitor" -l listen -d "Listen address"
complete -c logscope -n "__fish_seen_subcommand_from monitor" -l interval -d "Scrape interval"

# Completion command
complete -c logscope -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}
