// Package starter embeds the files `transcreate init` writes into a project:
// a commented transcreate.yml and an .env example.
package starter

import "embed"

// FS holds the starter files. Walk from "files" to iterate over them.
//
//go:embed files/*
var FS embed.FS

// Root is the directory inside FS that maps onto the project root.
const Root = "files"

// Rename maps embedded names to their on-disk names where they differ.
var Rename = map[string]string{
	"env.example": ".env.example",
}
