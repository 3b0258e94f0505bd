/*
Package ports defines the driven ports (interfaces) of the portscope inspector.

These interfaces decouple the extraction logic from the host application, allowing the
same code to run against a live Maya session, an in-memory scene or a test fake.

# Key Interfaces

  - GraphHost: read access to a node's attribute graph (existence, types, values, sizes).
  - MarkerFactory: creates locators at positions or transforms.
  - Selector / SelectionSource: optional scene-selection capabilities of a host.
  - SessionStore: persists viewer sessions (memory or Redis).

The package also ships contract suites (RunGraphHostContract, RunSessionStoreContract)
that every adapter runs in its own tests.
*/
package ports
