/*
Package markov implements a generic order-N Markov chain: training over
sequences of any comparable token type, weighted random generation, and
merging of independently trained chains.

A string specialization (TextChain) adds word/punctuation tokenization,
sentence-boundary handling, and sentence/paragraph assembly on top of the
generic engine. Chains round-trip through JSON and CBOR, and can be stored
as named models in a SQLite database.
*/
package markov
