// Package cli implements the pagemigrate command line.
//
// Commands:
//
//	transform   run the mapping of one control and print the result
//	validate    check the function expressions of mapping files
//	functions   list the built-in and plugin functions
//	init        create a starter pagemigrate.yaml
//	version     print version information
//
// Results go to stdout; logs go to stderr.
package cli
