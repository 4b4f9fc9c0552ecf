// Package file provides the TOML file implementation of driven.ConfigStore.
//
// The file lists the sources to sync and where persisted state lives:
//
//	data_dir = "~/.strapisync/data"
//
//	[[sources]]
//	name = "blog"
//	api_url = "http://localhost:1337"
//	access_token = "${BLOG_TOKEN}"
//
//	[[sources.collection_types]]
//	singular_name = "article"
//
// Secrets are expanded from the environment. The file is validated on
// every load; an invalid file never replaces a previously loaded one.
package file
