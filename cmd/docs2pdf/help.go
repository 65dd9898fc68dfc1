package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docs2pdf <command> [flags] [site]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Generate PDFs and the download manifest")
	fmt.Fprintln(w, "  postbuild  Same as build, skipped when autoBuildPdfs is false")
	fmt.Fprintln(w, "  doctor     Check browser, environment and site build")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docs2pdf help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build and postbuild commands.
func printBuildUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: docs2pdf %s [site] [flags]\n", name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print every page, category and sidebar of a built site to PDF.")
	if name == "postbuild" {
		fmt.Fprintln(w, "Does nothing when the configuration sets autoBuildPdfs: false.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  site    Site root (default: current directory or site.dir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "  -s, --site <dir>          Site root holding sidebars and versions.json")
	fmt.Fprintln(w, "      --build-dir <dir>     Rendered site (default <site>/build)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default docs2pdf.yaml)")
	fmt.Fprintln(w, "      --versions <list>     Only these versions, e.g. next,2.0")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom print stylesheet and templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Units rendered at once (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout per document (e.g., 60s, 2m)")
	fmt.Fprintln(w, "      --keep-html           Keep the reconciled HTML next to each PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and every file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCS2PDF_CONFIG, DOCS2PDF_SITE_DIR, DOCS2PDF_BUILD_DIR, DOCS2PDF_TIMEOUT,")
	fmt.Fprintln(w, "  DOCS2PDF_WORKERS, DOCS2PDF_AUTHOR, DOCS2PDF_PRODUCT_VERSION, DOCS2PDF_VERSIONS")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN selects the Chrome binary.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build", "postbuild":
		printBuildUsage(env.Stdout, args[0])
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: docs2pdf doctor [--config <file>] [--site <dir>] [--build-dir <dir>] [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the browser, the environment and the site build.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docs2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docs2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
