// Package api exposes the import pipeline over HTTP with gin.
package api
