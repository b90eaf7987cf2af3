// Package models defines the word, category, shared image and learning
// progress records that flow between the personal store, the shared pool
// and the export format.
package models
