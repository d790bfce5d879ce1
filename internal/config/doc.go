// Package config loads import specifications.
//
// An import specification is a YAML document naming the sources to read,
// the tables to map with their mappings and type conversions, and the run
// settings. Source locations may reference environment variables as
// ${VAR}; LoadEnv reads a .env file into the environment first.
package config
