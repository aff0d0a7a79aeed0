// Package viz formats CLI reports for stored sessions and benchmarks.
//
// Styles are lipgloss, frame-time charts are asciigraph plots. Nothing here
// touches the render loop; the loop draws raw escape sequences itself.
package viz
