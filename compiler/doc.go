/*
Package compiler translates a subset of Go into x86-64 assembly.

Process of compilation

	Program Text ->
		lex ->
	Tokens ->
		parse ->
	Abstract Syntax Tree (ast) ->
		analyze ->
	Scopes, Symbols and Types (analyze.Info) ->
		generate ->
	Assembly Text (asm.Unit) ->
		gcc -no-pie ->
	Binary Executable

Each stage stops at its first error and reports it as a *diag.Error.
The last step is left to the caller.
*/
package compiler
