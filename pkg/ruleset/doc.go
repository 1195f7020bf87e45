// Package ruleset loads rule declarations from the file system and turns
// them into validated descriptors.
//
// A rule set is a directory of YAML files. Each file holds a top-level
// `rules` sequence:
//
//	rules:
//	  - name: size
//	    module: filesize
//	    class_name: MaxFileSize
//	    type: require
//	    params:
//	      max_bytes: 2097152
//	  - name: layers
//	    module: expression
//	    class_name: CEL
//	    type: fail
//	    depends_on: [size]
//	    params:
//	      expression: map.layers <= 64
//
// # Loading
//
// Loader.LoadDirectory reads every declaration file in lexicographic order
// and concatenates their rules into one ordered slice of Entry values.
// Files whose name starts with an excluded prefix are skipped; files with
// other extensions are ignored. A file that cannot be read or parsed fails
// the whole load with a *LoadError or *ParseError. Rule names are not
// deduplicated; Duplicates reports repeated names for linting.
//
// # Validation
//
// Entries stay raw until ParseDescriptor validates them. A failed
// validation yields a *ConfigurationError listing every offending field, so
// that callers can record the rule as failed and continue with the next one.
//
// # Watching
//
// FileWatcher reports changes to declaration files (and any extra paths,
// such as the map under validation) with debouncing, for watch mode.
package ruleset
