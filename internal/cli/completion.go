package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/mpcalc/internal/mp"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell scripts are generated from flagRegistry, so a new flag only
// needs an entry there.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "radix")
	Short     string   // short flag without "-" (e.g., "q")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsOp      bool     // true if values come from the operation list (dynamic)
}

// takesValue reports whether the flag consumes an argument.
func (f FlagCompletion) takesValue() bool {
	return f.IsFile || f.IsOp || len(f.Values) > 0 || f.ValueName != ""
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "op", Help: "Operation to evaluate", IsOp: true, ValueName: "operation"},
	{Short: "a", Help: "First operand", ValueName: "number"},
	{Short: "b", Help: "Second operand or exponent", ValueName: "number"},
	{Short: "m", Help: "Modulus", ValueName: "number"},
	{Short: "d", Help: "Single-digit operand or bit count", ValueName: "digit"},
	{Long: "input-radix", Help: "Radix of the operands", Values: []string{"0", "2", "8", "10", "16", "36", "64"}, ValueName: "radix"},
	{Long: "radix", Help: "Radix of the result", Values: []string{"2", "8", "10", "16", "36", "64"}, ValueName: "radix"},
	{Long: "reduction", Help: "exptmod reduction", Values: mp.ReductionNames(), ValueName: "reduction"},
	{Long: "window", Help: "exptmod window width in bits", Values: []string{"0", "1", "2", "3", "4", "5", "6", "7", "8"}, ValueName: "bits"},
	{Long: "compare", Help: "Compare every exptmod strategy"},
	{Long: "tui", Help: "Compare the strategies in a dashboard"},
	{Long: "repl", Help: "Start the register REPL"},
	{Long: "serve", Help: "Start the HTTP service"},
	{Long: "addr", Help: "Listen address", Values: []string{":8080", "127.0.0.1:8080"}, ValueName: "address"},
	{Long: "calibrate", Help: "Run calibration mode"},
	{Long: "calibration-profile", Help: "Calibration profile file", IsFile: true, ValueName: "file"},
	{Long: "config", Help: "TOML configuration file", IsFile: true, ValueName: "file"},
	{Long: "env-file", Help: "dotenv file", IsFile: true, ValueName: "file"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"10s", "1m", "5m", "30m"}, ValueName: "duration"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "verbose", Short: "v", Help: "Show the full value"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error", "disabled"}, ValueName: "level"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - ops: The operation names offered for --op.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, ops []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(ops)
	case "zsh":
		script = zshCompletion(ops)
	case "fish":
		script = fishCompletion(ops)
	case "powershell", "ps":
		script = powerShellCompletion(ops)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

// flagNames returns the dash-prefixed spellings of f.
func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(ops []string) string {
	var opts []string
	var cases strings.Builder
	var files []string
	for _, f := range flagRegistry {
		opts = append(opts, flagNames(f)...)
		switch {
		case f.IsFile:
			files = append(files, flagNames(f)...)
		case f.IsOp:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"${operations}\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(flagNames(f), "|"))
		case len(f.Values) > 0:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				strings.Join(flagNames(f), "|"), strings.Join(f.Values, " "))
		}
	}
	if len(files) > 0 {
		fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(files, "|"))
	}

	return fmt.Sprintf(`# Bash completion script for mpcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_mpcalc_completions() {
    local cur prev opts operations
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    operations="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _mpcalc_completions mpcalc
`, strings.Join(opts, " "), strings.Join(ops, " "), cases.String())
}

func zshCompletion(ops []string) string {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef mpcalc

# Zsh completion script for mpcalc
# Add this to your ~/.zshrc or place in $fpath

_mpcalc() {
    local -a operations
    operations=(%s)

    _arguments -s \
%s
}

_mpcalc "$@"
`, strings.Join(ops, " "), strings.Join(args, " \\\n"))
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsOp:
		valueSuffix = fmt.Sprintf(":%s:($operations)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '%s[%s]%s'", flagNames(f)[0], f.Help, valueSuffix)
}

func fishCompletion(ops []string) string {
	lines := []string{
		"# Fish completion script for mpcalc",
		"# Add this to ~/.config/fish/completions/mpcalc.fish",
		"",
		"complete -c mpcalc -f",
	}
	opList := strings.Join(ops, " ")
	for _, f := range flagRegistry {
		parts := []string{"complete -c mpcalc"}
		if f.Short != "" {
			parts = append(parts, "-s "+f.Short)
		}
		if f.Long != "" {
			parts = append(parts, "-l "+f.Long)
		}
		parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))
		switch {
		case f.IsFile:
			parts = append(parts, "-rF")
		case f.IsOp:
			parts = append(parts, fmt.Sprintf("-xa '%s'", opList))
		case len(f.Values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
		case f.takesValue():
			parts = append(parts, "-x")
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}

func powerShellCompletion(ops []string) string {
	var options, switches []string
	for _, f := range flagRegistry {
		for _, name := range flagNames(f) {
			options = append(options, fmt.Sprintf("        @{Name = '%s'; Description = '%s' }", name, f.Help))
		}
		values := f.Values
		if f.IsOp {
			values = ops
		}
		if len(values) == 0 || f.IsFile {
			continue
		}
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		switches = append(switches, fmt.Sprintf(`        '%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, flagNames(f)[0], strings.Join(quoted, ", ")))
	}

	return fmt.Sprintf(`# PowerShell completion script for mpcalc
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'mpcalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, strings.Join(options, "\n"), strings.Join(switches, "\n"))
}
