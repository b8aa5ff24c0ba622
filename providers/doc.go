// Package providers runs extension validation providers written in JavaScript or TypeScript.
//
// Scripts are transpiled with esbuild and executed in a goja runtime. Every script gets its own
// runtime; a provider registered by a script serves every document being validated, so calls into
// one runtime are serialised.
//
// # Writing providers
//
// A script registers one or more providers with registerProvider. The validate function is called
// once per node of the document model and returns the diagnostics for that node:
//
//	import { registerProvider, createDiagnostic } from 'swagedit';
//
//	registerProvider({
//	  id: 'operation-summary',
//	  versions: ['2.0', '3.0'],
//	  validate(node, doc) {
//	    if (!/^\/paths\/[^/]+\/(get|put|post|delete|patch)$/.test(node.pointer())) {
//	      return [];
//	    }
//	    if (node.has('summary')) {
//	      return [];
//	    }
//	    return [createDiagnostic('warning', 'operation missing summary', node)];
//	  },
//	});
//
// versions is optional; without it the provider applies to documents of every version.
//
// # Node API
//
// Nodes expose pointer(), property(), kind() ("object", "array" or "value"), line(), value(),
// fieldNames(), has(name), get(name), len(), at(index), parent() and definitionNames(), the names
// of the dialect schema definitions describing the node. get, at and parent return null when there
// is no such node. doc exposes location() and version().
//
// createDiagnostic(severity, message, node[, rule]) builds a diagnostic anchored on the node.
// severity is "error" or "warning"; rule defaults to validation-provider.
//
// # Configuration
//
//	providers:
//	  paths:
//	    - ./rules/*.ts
//	  timeout: 2s
//
// # Failures
//
// A script that throws, times out or returns something other than an array of diagnostics yields
// no diagnostics for that node. The failure is returned to the validator, which logs it. Positions
// in TypeScript sources are mapped back through the source map esbuild generates.
package providers
