// Package validation checks a survey draft before submission and reports
// every problem it finds as a structured field error.
package validation
