package rules

//Rule grants methods on a collection when one of its conditions holds. A
//Collection of "*" matches every collection.
type Rule struct {
	Collection string  `json:"collection"`
	Allow      []Allow `json:"allow"`
}

//Allow grants a set of methods, optionally guarded by a condition evaluated
//over the caller and the target collection.
type Allow struct {
	Methods []Method `json:"methods"`
	If      string   `json:"if"`
}

//Method is the kind of access requested on a collection
type Method string

const (
	//READ covers get, list and count operations
	READ Method = "READ"
	//WRITE covers create and update operations
	WRITE Method = "WRITE"
	//DELETE covers delete operations
	DELETE Method = "DELETE"
)
