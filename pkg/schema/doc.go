// Package schema validates parameter key/value documents.
//
// Two layers are provided. The structural layer checks raw decoded JSON the
// way a JSON schema would: every item of a key/value list is an object with
// exactly a string "parameter" and a string "value".
//
//	if err := schema.ValidateKVDocument(raw); err != nil {
//	    // reject before any file is written
//	}
//
// The semantic layer checks values against the parameter definition the tool
// exports for a model: unknown names, numbers that do not parse or fall
// outside min/max, strings longer than maxLength and values missing from a
// dropdown's options.
//
//	s := schema.FromDefinition(def)
//	err := schema.ValidateParameters(s, kv)
//
// Both layers return an *AggregateError holding one *ValidationError per failure.
package schema
