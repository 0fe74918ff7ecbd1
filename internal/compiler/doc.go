// Package compiler turns a cluster document into a single EMR RunJobFlow
// request.
//
// Every function here is a pure transformation of a config.Node subtree into
// the corresponding aws-sdk-go-v2 EMR type. Nothing is validated beyond what
// the config accessor enforces; the first error aborts the whole request.
package compiler
