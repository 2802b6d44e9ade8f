// Package mentions implements the mention clustering engine.
//
// Cluster folds raw sentiment-tagged items into canonical mention groups by
// exact cleaned-content key and resolves conflicting attributes with
// deterministic recency and priority rules. Clustering is pure: the same
// input multiset always yields the same groups, regardless of item order.
package mentions
