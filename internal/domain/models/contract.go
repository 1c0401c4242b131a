package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ArtifactFormat identifies the toolchain that produced an artifact
type ArtifactFormat string

const (
	ArtifactFormatHardhat ArtifactFormat = "hardhat"
	ArtifactFormatFoundry ArtifactFormat = "foundry"
)

// Artifact is a compiled contract ready to be deployed
type Artifact struct {
	Name         string         `json:"name"`
	SourcePath   string         `json:"sourcePath"`   // e.g. "contracts/MyToken.sol"
	ArtifactPath string         `json:"artifactPath"` // file the artifact was read from
	Format       ArtifactFormat `json:"format"`
	ABI          abi.ABI        `json:"-"`
	Bytecode     []byte         `json:"-"`
}

// FullyQualifiedName returns "path/File.sol:Name"
func (a *Artifact) FullyQualifiedName() string {
	if a.SourcePath == "" {
		return a.Name
	}
	return fmt.Sprintf("%s:%s", a.SourcePath, a.Name)
}

// ShortContractName strips the source path from an identifier, so
// "src/Token.sol:Token" becomes "Token".
func ShortContractName(identifier string) string {
	return identifier[strings.LastIndex(identifier, ":")+1:]
}
