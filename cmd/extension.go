package cmd

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

const (
	EnvMaxIter   = "IMMUNIZE_MAX_ITER"
	EnvTolerance = "IMMUNIZE_TOLERANCE"
	EnvWorkers   = "IMMUNIZE_WORKERS"
	EnvCurrency  = "IMMUNIZE_CURRENCY"
)

// ExtensionEnv returns the global flags as environment variables for an extension.
func ExtensionEnv() []string {
	return []string{
		EnvMaxIter + "=" + strconv.Itoa(*maxIter),
		EnvTolerance + "=" + strconv.FormatFloat(*tolerance, 'g', -1, 64),
		EnvWorkers + "=" + strconv.Itoa(*workers),
		EnvCurrency + "=" + *currency,
	}
}

// RunExtension attempts to find and execute an external immunize-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "immunize-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", externalCmdName, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = append(os.Environ(), ExtensionEnv()...)

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		// If it's not an ExitError or we can't get the status, report a generic error
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)

		return true, 1 // Indicate that an attempt was made, but it failed
	}

	return true, 0
}
