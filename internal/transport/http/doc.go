// Package http contains the HTTP handlers of the upload-and-report
// surface. Handlers are thin: multipart decoding and response shaping
// only; all computation lives in the attendance pipeline.
package http
