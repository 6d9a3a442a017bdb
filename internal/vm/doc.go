// Package vm implements the workflows behind the commands: selecting
// domains by pattern and applying an operation to each one.
//
// Every operation takes the full set of compiled selection patterns and
// walks the matching domains, collecting a per-domain result instead of
// stopping at the first problem. One broken guest on a host with fifty
// domains must not hide the other forty-nine, so errors from individual
// domains travel in the results and only a failed domain enumeration, which
// means the connection itself is unusable, aborts an operation.
//
// The package never renders anything. Results carry what happened; the
// command layer decides how to say it.
package vm
