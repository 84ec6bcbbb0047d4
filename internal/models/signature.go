package models

// Field is one named, typed input column of a model signature.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Signature describes the inputs a model expects and the type of its
// output, inferred from the training feature matrix and a sample
// prediction. Field order follows the column order of the matrix.
type Signature struct {
	Inputs []Field `json:"inputs" yaml:"inputs"`
	Output string  `json:"output" yaml:"output"`
}

// ModelDescriptor is the MLmodel file written next to a serialized
// model inside the artifact directory. The loader field names the
// flavor that produced the model so a serving process can pick the
// right deserializer.
type ModelDescriptor struct {
	ArtifactPath string     `yaml:"artifact_path"`
	Loader       string     `yaml:"loader"`
	ModelFile    string     `yaml:"model_file"`
	Environment  string     `yaml:"environment,omitempty"`
	Signature    *Signature `yaml:"signature,omitempty"`
}
