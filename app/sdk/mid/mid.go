// Package mid provides app level middleware support.
package mid
