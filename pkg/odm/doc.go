// Package odm defines document models from class definitions.
//
// A Class collects a field-type map, instance methods, virtual accessors,
// statics, options, plugins and hooks:
//
//	person := odm.Define("Person").
//		Fields(odm.Fields{"name": odm.String, "age": odm.Number}).
//		Method("incrementAge", func(doc odm.Instance, _ ...any) (any, error) {
//			return nil, doc.Set("age", doc.Get("age").(float64)+1)
//		}).
//		Getter("nextAge", func(doc odm.Instance) any {
//			return doc.Get("age").(float64) + 1
//		})
//
//	Person := odm.Must(odm.Model(person))
//
// Schema builds an engine schema from a class without registering it;
// Model and its variants build the schema and register it on a connection.
// A class can no longer be changed once its first schema has been built.
package odm
