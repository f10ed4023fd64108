// Package detector keeps the allocation and request matrices mirrored from the
// resource manager, evaluates the deadlock heuristic over them and tracks
// deadlock warnings per flight. The matrices are used for detection only; the
// pools and the flights' own allocation bits remain the source of truth.
package detector
