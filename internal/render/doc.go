// Package render turns controller state into Stream Deck titles and images.
//
// Titles are plain strings. Images are PNG files shipped with the plugin,
// loaded once and handed to the SDK as base64 data URIs.
package render
