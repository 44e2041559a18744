// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the certification evaluation pipeline. It lets AI assistants run
// evaluations and search indexed submission evidence.
package mcp

import "errors"

// ErrMissingEvaluationService is returned when the evaluation service is not provided.
var ErrMissingEvaluationService = errors.New("mcp: evaluation service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
