package parser

const (
	// positionalParamPrefix names parameters that are unnamed or blank in
	// the source so forwarders can pass them on
	positionalParamPrefix = "arg"

	// mainPackage cannot be imported by the generated package
	mainPackage = "main"
)
