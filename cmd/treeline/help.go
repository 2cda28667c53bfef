// ABOUTME: Help display for the treeline CLI with grouped flags and examples.
// ABOUTME: Provides printHelp for formatted usage output.
package main

import (
	"fmt"
	"io"
)

const treelineASCII = `
              /\
             /**\
            /****\
           /******\
             |  |
       /\    |  |    /\
      /**\   |  |   /**\
     /****\  |  |  /****\
       |  |__|  |__|  |
       |______________|
             |  |
`

// printHelp writes a formatted help message to w, including usage
// patterns, grouped flags, and examples.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, treelineASCII)
	fmt.Fprintf(w, "treeline %s - family-tree diagram renderer\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  treeline -root <id> <family.ged>       Render a tree from a GEDCOM file")
	fmt.Fprintln(w, "  treeline -root <id> <notes-dir>        Render a tree from a notes directory")
	fmt.Fprintln(w, "  treeline -db people.db <family.ged>    Persist records to SQLite")
	fmt.Fprintln(w, "  treeline -db people.db -root <id>      Render from persisted records")
	fmt.Fprintln(w, "  treeline -server <family.ged>          Start the HTTP viewer server")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tree Flags:")
	fmt.Fprintln(w, "  -root <id>            Root person id to render from")
	fmt.Fprintln(w, "  -policy <policy>      ancestors, descendants, full (default: full)")
	fmt.Fprintln(w, "  -generations <n>      Generation limit, 0 for unlimited (default: 0)")
	fmt.Fprintln(w, "  -no-spouses           Exclude spouses from the rendered tree")
	fmt.Fprintln(w, "  -orientation <o>      vertical, horizontal (default: vertical)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output Flags:")
	fmt.Fprintln(w, "  -format <format>      canvas, json, dot, svg, png (default: canvas)")
	fmt.Fprintln(w, "  -o <file>             Output file (default: stdout)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -server               Start HTTP viewer server mode")
	fmt.Fprintln(w, "  -port <port>          Server port (default: 7353)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -db <file>            SQLite database for persisted records")
	fmt.Fprintln(w, "  -verbose              Verbose output")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  treeline -root I1 family.ged")
	fmt.Fprintln(w, "  treeline -root I1 -policy ancestors -generations 4 family.ged")
	fmt.Fprintln(w, "  treeline -root ada -format dot notes/ > tree.dot")
	fmt.Fprintln(w, "  treeline -db people.db family.ged")
	fmt.Fprintln(w, "  treeline -server -port 8080 family.ged")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Docs: https://github.com/treeline-tools/treeline")
}
