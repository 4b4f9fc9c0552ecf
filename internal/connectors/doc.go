// Package connectors provides clients for the content systems synced from.
// Each connector implements the driven Strapi ports (schema fetch, entity
// fetch, media lookup and authentication) for one wire format.
package connectors
