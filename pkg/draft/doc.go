// Package draft holds the in-memory survey definition edited by the authoring
// form. Draft is a value type: every edit returns a new Draft built from the
// receiver and earlier snapshots stay valid. The question-set operations keep the
// question list consistent with the declared count, question type, and input
// mode; structured FieldKey values identify the form field an error belongs
// to.
package draft
