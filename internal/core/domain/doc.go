// Package domain contains the core business entities for fieldbill.
// It has no dependencies on other packages in this module.
package domain
