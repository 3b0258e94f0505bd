/*
Package domain contains the core data model of portscope.

It describes what the inspector reads from a host graph and what it hands back to
callers. The package is kept pure: no I/O, no host calls, no persistence.

# Key Entities

  - PlugType: the enumerated host type tags and their lookup table (wrapped tuples,
    marker capability, display category).
  - Value: a normalized scalar or immutable tuple read from one plug.
  - ExtractionResult: the column-major table of values plus type, length, min and max.
  - Path: builder and parser for host attribute paths such as "out[2].values[0]".
  - Placement: where a marker goes, from a position or a 4x4 transform value.
  - Session: the state of a viewer between refreshes.
*/
package domain
