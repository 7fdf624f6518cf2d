// Package provider is the URI-addressed data facade over the book and user tables.
//
// Callers name a table with a resource identifier such as
// content://org.example.book.provider/book. The provider resolves it through an
// ordered RouteTable (first match wins, no match is ErrUnsupportedResource), runs the
// operation against the store opened by its Opener, and tells its ChangeNotifier
// about every mutation that changed at least one row.
//
//	routes, _ := provider.NewRouteTable(provider.DefaultRoutes(provider.DefaultAuthority)...)
//	p := provider.New(database.NewManager(cfg), routes, provider.WithNotifier(bus))
//	defer p.Close()
//
//	_, err := p.Insert(ctx, provider.BookURI, provider.Record{"_id": 6, "name": "Go"})
//	rs, err := p.Query(ctx, provider.BookURI, nil, "", nil, "_id ASC")
//
// # Errors
//
//   - ErrUnsupportedResource: the identifier matched no route. Checked before the
//     store is touched.
//   - ErrStorage (*StorageError): the store rejected the operation or the values do
//     not fit the table schema.
//   - ErrSchemaInit (*SchemaInitError): the store could not be opened or its schema
//     ensured. The failure is permanent for that provider.
package provider
