// Package model contains the in-memory representation of the airport domain:
// resource kinds, flight classes, lifecycle phases and the per-flight status
// record shared between a flight's lifecycle goroutine and the resource
// manager.
//
// The acquisition ordering table lives here so that every component refers to
// the same class-dependent order:
//
//	order := model.AcquisitionOrder(model.PhaseLanding, model.Domestic)
//	// [tower runway]
package model
