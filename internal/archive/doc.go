// Package archive reads and writes CFG set records as JSON or YAML documents.
//
// JSON output is the canonical form from ir.MarshalCanonical, so exported
// files hash identically to the stored digest. YAML output is meant for
// hand editing. Both formats are validated against an embedded CUE schema
// before decoding, and decoding rejects unknown fields.
//
// Document shape:
//
//	id: 0190f3a4-...        # optional, generated when absent
//	cfgs:
//	  - id: 0190f3a4-...    # optional
//	    address: "401000"   # lowercase hex, no prefix
//	    procedure_name: main
package archive
