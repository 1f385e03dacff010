// Package utils provides the string shaping rules applied to payloads before
// they are sent to InvenTree: rune-safe truncation, digit extraction and
// description sanitizing.
package utils
