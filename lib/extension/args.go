// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/groboclown/nightjar-mesh-sub000/lib/document"
)

// APIVersion is the only protocol version understood on either side.
const APIVersion = "1"

// Action selects what a data-store invocation does.
type Action string

const (
	Fetch  Action = "fetch"
	Commit Action = "commit"
)

// DataStoreRequest is one data-store invocation.
type DataStoreRequest struct {
	Activity        document.Name
	Action          Action
	PreviousVersion string
	ActionFile      string
}

// Args renders the request as extension-point arguments.
func (r DataStoreRequest) Args() []string {
	return []string{
		"--activity=" + string(r.Activity),
		"--action=" + string(r.Action),
		"--previous-document-version=" + r.PreviousVersion,
		"--action-file=" + r.ActionFile,
		"--api-version=" + APIVersion,
	}
}

// DiscoveryMapRequest is one discovery-map invocation.
type DiscoveryMapRequest struct {
	OutputFile string
}

// Args renders the request as extension-point arguments.
func (r DiscoveryMapRequest) Args() []string {
	return []string{
		"--output-file=" + r.OutputFile,
		"--api-version=" + APIVersion,
	}
}

// ArgumentError is a protocol violation detected by an extension-point
// executable. Code is the process exit status to report.
type ArgumentError struct {
	Code    ExitCode
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

func (e *ArgumentError) ExitCode() int { return int(e.Code) }

func argumentError(code ExitCode, format string, args ...any) *ArgumentError {
	return &ArgumentError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// DataStoreFlags binds the data-store protocol arguments to a flag set.
type DataStoreFlags struct {
	activity        string
	action          string
	previousVersion string
	actionFile      string
	apiVersion      string
}

// AddDataStoreFlags registers the protocol flags on flagSet. Call
// [DataStoreFlags.Request] after parsing.
func AddDataStoreFlags(flagSet *pflag.FlagSet) *DataStoreFlags {
	flags := &DataStoreFlags{}
	flagSet.StringVar(&flags.activity, "activity", "", "document to act on (templates, discovery-map, configuration)")
	flagSet.StringVar(&flags.action, "action", "", "fetch or commit")
	flagSet.StringVar(&flags.previousVersion, "previous-document-version", "", "version the caller already has")
	flagSet.StringVar(&flags.actionFile, "action-file", "", "file to write on fetch or read on commit")
	flagSet.StringVar(&flags.apiVersion, "api-version", "", "protocol version, must be "+APIVersion)
	return flags
}

// Request validates the parsed flags.
func (f *DataStoreFlags) Request() (DataStoreRequest, error) {
	if f.apiVersion != APIVersion {
		return DataStoreRequest{}, argumentError(ExitBadAPIVersion, "unsupported --api-version %q", f.apiVersion)
	}
	name, err := document.ParseName(f.activity)
	if err != nil {
		return DataStoreRequest{}, argumentError(ExitBadActivity, "invalid --activity: %v", err)
	}
	action := Action(f.action)
	if action != Fetch && action != Commit {
		return DataStoreRequest{}, argumentError(ExitBadAction, "unsupported --action %q", f.action)
	}
	if f.actionFile == "" {
		return DataStoreRequest{}, argumentError(ExitBadAction, "--action-file is required")
	}
	return DataStoreRequest{
		Activity:        name,
		Action:          action,
		PreviousVersion: f.previousVersion,
		ActionFile:      f.actionFile,
	}, nil
}

// DiscoveryMapFlags binds the discovery-map protocol arguments to a
// flag set.
type DiscoveryMapFlags struct {
	outputFile string
	apiVersion string
}

// AddDiscoveryMapFlags registers the protocol flags on flagSet.
func AddDiscoveryMapFlags(flagSet *pflag.FlagSet) *DiscoveryMapFlags {
	flags := &DiscoveryMapFlags{}
	flagSet.StringVar(&flags.outputFile, "output-file", "", "file to write the discovery map to")
	flagSet.StringVar(&flags.apiVersion, "api-version", "", "protocol version, must be "+APIVersion)
	return flags
}

// Request validates the parsed flags.
func (f *DiscoveryMapFlags) Request() (DiscoveryMapRequest, error) {
	if f.apiVersion != APIVersion {
		return DiscoveryMapRequest{}, argumentError(ExitBadAPIVersion, "unsupported --api-version %q", f.apiVersion)
	}
	if f.outputFile == "" {
		return DiscoveryMapRequest{}, argumentError(ExitBadAction, "--output-file is required")
	}
	return DiscoveryMapRequest{OutputFile: f.outputFile}, nil
}
